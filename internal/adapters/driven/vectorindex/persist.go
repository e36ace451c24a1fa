package vectorindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/doclens/doclens-cli/internal/core/domain"
	"github.com/doclens/doclens-cli/internal/core/ports/driven"
)

// Artifact header constants. The on-disk layout is private to this package;
// other components treat the file as opaque.
const (
	fileMagic   = "DLVI"
	fileVersion = uint32(1)

	kindCodeFlat = uint8(0)
	kindCodeIVF  = uint8(1)
)

// Save persists the flat index to path, atomically.
func (f *Flat) Save(path string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return writeAtomic(path, func(w io.Writer) error {
		if err := writeHeader(w, kindCodeFlat, f.dim, len(f.vectors)); err != nil {
			return err
		}
		return writeVectors(w, f.vectors)
	})
}

// Save persists the IVF index to path, atomically. Untrained indexes cannot
// be saved.
func (iv *IVF) Save(path string) error {
	iv.mu.RLock()
	defer iv.mu.RUnlock()

	if !iv.trained {
		return fmt.Errorf("ivf: save before train: %w", domain.ErrNotTrained)
	}

	return writeAtomic(path, func(w io.Writer) error {
		if err := writeHeader(w, kindCodeIVF, iv.dim, len(iv.vectors)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(iv.centroids))); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(iv.nprobe)); err != nil {
			return err
		}
		if err := writeVectors(w, iv.centroids); err != nil {
			return err
		}
		if err := writeVectors(w, iv.vectors); err != nil {
			return err
		}
		for _, list := range iv.lists {
			if err := binary.Write(w, binary.LittleEndian, uint64(len(list))); err != nil {
				return err
			}
			for _, ordinal := range list {
				if err := binary.Write(w, binary.LittleEndian, uint64(ordinal)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// headerSize is the fixed byte length of the artifact header: magic,
// version, kind, dimension, vector count.
const headerSize = int64(len(fileMagic)) + 4 + 1 + 4 + 8

// Load reads an index artifact, detecting its kind from the header. The
// header's counts are cross-checked against the file size before any
// allocation, so a corrupt or truncated header cannot drive the loader
// into an absurd allocation.
func Load(path string) (driven.VectorIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, domain.ErrIndexUnavailable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	payload := info.Size() - headerSize

	r := bufio.NewReader(f)
	kind, dim, count, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	vectorBytes := int64(count) * int64(dim) * 4
	if count < 0 || vectorBytes < 0 || vectorBytes > payload {
		return nil, fmt.Errorf("read %s: header claims %d vectors of dimension %d, file has %d payload bytes",
			path, count, dim, payload)
	}

	switch kind {
	case kindCodeFlat:
		return loadFlat(r, dim, count)
	case kindCodeIVF:
		return loadIVF(r, dim, count, payload-vectorBytes)
	default:
		return nil, fmt.Errorf("read %s: unknown index kind %d", path, kind)
	}
}

func loadFlat(r io.Reader, dim, count int) (*Flat, error) {
	idx, err := NewFlat(dim)
	if err != nil {
		return nil, err
	}
	vectors, err := readVectors(r, dim, count)
	if err != nil {
		return nil, err
	}
	idx.vectors = vectors
	return idx, nil
}

// loadIVF reads the IVF section. rest is the payload byte budget left after
// the stored vectors; the centroid count is validated against it before
// allocating.
func loadIVF(r io.Reader, dim, count int, rest int64) (*IVF, error) {
	var nlist, nprobe uint32
	if err := binary.Read(r, binary.LittleEndian, &nlist); err != nil {
		return nil, fmt.Errorf("read partition count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &nprobe); err != nil {
		return nil, fmt.Errorf("read nprobe: %w", err)
	}
	if int64(nlist)*int64(dim)*4 > rest {
		return nil, fmt.Errorf("header claims %d partitions of dimension %d, only %d payload bytes remain",
			nlist, dim, rest)
	}

	idx, err := NewIVF(dim, int(nlist), int(nprobe))
	if err != nil {
		return nil, err
	}

	if idx.centroids, err = readVectors(r, dim, int(nlist)); err != nil {
		return nil, fmt.Errorf("read centroids: %w", err)
	}
	if idx.vectors, err = readVectors(r, dim, count); err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}

	idx.lists = make([][]int, nlist)
	for c := range idx.lists {
		var size uint64
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("read partition %d size: %w", c, err)
		}
		if size > uint64(count) {
			return nil, fmt.Errorf("partition %d has %d members, index has %d vectors", c, size, count)
		}
		list := make([]int, size)
		for i := range list {
			var ordinal uint64
			if err := binary.Read(r, binary.LittleEndian, &ordinal); err != nil {
				return nil, fmt.Errorf("read partition %d member: %w", c, err)
			}
			if ordinal >= uint64(count) {
				return nil, fmt.Errorf("partition %d references ordinal %d, index has %d vectors", c, ordinal, count)
			}
			list[i] = int(ordinal)
		}
		idx.lists[c] = list
	}

	idx.trained = true
	return idx, nil
}

func writeHeader(w io.Writer, kind uint8, dim, count int) error {
	if _, err := w.Write([]byte(fileMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, fileVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, kind); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(dim)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint64(count))
}

func readHeader(r io.Reader) (kind uint8, dim, count int, err error) {
	magic := make([]byte, len(fileMagic))
	if _, err = io.ReadFull(r, magic); err != nil {
		return 0, 0, 0, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != fileMagic {
		return 0, 0, 0, fmt.Errorf("bad magic %q, not an index artifact", magic)
	}

	var version uint32
	if err = binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, 0, 0, fmt.Errorf("read version: %w", err)
	}
	if version != fileVersion {
		return 0, 0, 0, fmt.Errorf("unsupported artifact version %d", version)
	}

	if err = binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return 0, 0, 0, fmt.Errorf("read kind: %w", err)
	}

	var dim32 uint32
	if err = binary.Read(r, binary.LittleEndian, &dim32); err != nil {
		return 0, 0, 0, fmt.Errorf("read dimension: %w", err)
	}
	if dim32 == 0 {
		return 0, 0, 0, fmt.Errorf("artifact has zero dimension")
	}

	var count64 uint64
	if err = binary.Read(r, binary.LittleEndian, &count64); err != nil {
		return 0, 0, 0, fmt.Errorf("read vector count: %w", err)
	}

	return kind, int(dim32), int(count64), nil
}

func writeVectors(w io.Writer, vectors [][]float32) error {
	for _, v := range vectors {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readVectors(r io.Reader, dim, count int) ([][]float32, error) {
	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

// writeAtomic writes the artifact to a temp file in the target directory,
// fsyncs it and renames it over path. Readers holding the old file keep a
// consistent view; new readers see the complete new artifact.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}
