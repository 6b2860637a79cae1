// Package vectorindex is a flat, file-persisted vector index with cosine similarity search.
package vectorindex

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"PerguntaQueRespondo/backend/go/internal/rag/schema"
)

// File names inside the index directory.
const (
	VectorsFile = "index.vectors"
	DocsFile    = "index.docs.json"
)

var (
	// ErrNotFound is returned by Load when the index directory holds no index.
	ErrNotFound = errors.New("vector index not found")
	// ErrDimensionMismatch is returned when a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Index keeps documents and their L2-normalized vectors in memory.
type Index struct {
	mu        sync.RWMutex
	dimension int
	docs      []*schema.Document
	vectors   [][]float32
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	return &Index{dimension: dimension}, nil
}

// Dimension returns the vector size.
func (ix *Index) Dimension() int { return ix.dimension }

// Len returns the number of documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Add appends documents. Each document must carry an embedding of the index dimension.
func (ix *Index) Add(docs ...*schema.Document) error {
	vectors := make([][]float32, len(docs))
	for i, d := range docs {
		if len(d.Embedding) != ix.dimension {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(d.Embedding), ix.dimension)
		}
		vectors[i] = normalize(d.Embedding)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs = append(ix.docs, docs...)
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Search returns up to k documents ordered by descending cosine similarity. Ties keep
// insertion order.
func (ix *Index) Search(vector []float32, k int) ([]schema.ScoredDocument, error) {
	if len(vector) != ix.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), ix.dimension)
	}
	query := normalize(vector)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := make([]schema.ScoredDocument, len(ix.docs))
	for i := range ix.vectors {
		hits[i] = schema.ScoredDocument{Document: ix.docs[i], Score: dot(ix.vectors[i], query)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k < len(hits) {
		hits = hits[:max(k, 0)]
	}
	return hits, nil
}

// Exists reports whether dir holds both index files.
func Exists(dir string) bool {
	for _, name := range []string{VectorsFile, DocsFile} {
		if fi, err := os.Stat(filepath.Join(dir, name)); err != nil || fi.IsDir() {
			return false
		}
	}
	return true
}

type vectorsFile struct {
	Dimension int
	IDs       []string
	Vectors   [][]float32
}

// Save writes the index into dir. Each file is written to a temp file and renamed into place.
func (ix *Index) Save(dir string) error {
	ix.mu.RLock()
	vf := vectorsFile{Dimension: ix.dimension, IDs: make([]string, len(ix.docs)), Vectors: ix.vectors}
	for i, d := range ix.docs {
		vf.IDs[i] = d.ID
	}
	docs := ix.docs
	defer ix.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	if err := writeAtomic(dir, DocsFile, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetEscapeHTML(false)
		return enc.Encode(docs)
	}); err != nil {
		return err
	}
	return writeAtomic(dir, VectorsFile, func(f *os.File) error {
		return gob.NewEncoder(f).Encode(vf)
	})
}

// Load reads an index saved by Save. It returns ErrNotFound when dir holds no index.
func Load(dir string) (*Index, error) {
	if !Exists(dir) {
		return nil, ErrNotFound
	}

	vf, err := readVectors(filepath.Join(dir, VectorsFile))
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(dir, DocsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read docstore: %w", err)
	}
	var docs []*schema.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode docstore: %w", err)
	}

	if len(docs) != len(vf.IDs) || len(vf.IDs) != len(vf.Vectors) {
		return nil, fmt.Errorf("corrupt index: %d documents, %d ids, %d vectors", len(docs), len(vf.IDs), len(vf.Vectors))
	}
	for i, d := range docs {
		if d.ID != vf.IDs[i] {
			return nil, fmt.Errorf("corrupt index: document %d is %q, vector is %q", i, d.ID, vf.IDs[i])
		}
		if len(vf.Vectors[i]) != vf.Dimension {
			return nil, fmt.Errorf("corrupt index: %w at %d", ErrDimensionMismatch, i)
		}
		d.Embedding = vf.Vectors[i]
	}
	return &Index{dimension: vf.Dimension, docs: docs, vectors: vf.Vectors}, nil
}

func readVectors(path string) (*vectorsFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vectors: %w", err)
	}
	defer f.Close()
	var vf vectorsFile
	if err := gob.NewDecoder(f).Decode(&vf); err != nil {
		return nil, fmt.Errorf("failed to decode vectors: %w", err)
	}
	if vf.Dimension <= 0 {
		return nil, errors.New("corrupt index: invalid dimension")
	}
	return &vf, nil
}

func writeAtomic(dir, name string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}

// normalize returns a unit-length copy of v. The zero vector stays zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
