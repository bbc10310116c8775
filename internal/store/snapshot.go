package store

import (
	"sort"

	"github.com/coder/hnsw"

	"attendcore/internal/embedding"
)

// HNSW index parameters for facenet reference embeddings.
const (
	// hnswMaxNeighbors (M) is the maximum number of neighbors per node.
	hnswMaxNeighbors = 16

	// hnswMinReferences is the reference-set size below which the index is
	// not built at all; similarity lookups scan exactly instead.
	hnswMinReferences = 256
)

// Snapshot is an immutable view of the reference set. It is built once per
// cache rebuild and shared by concurrent readers; nothing mutates it after
// construction.
//
// Recognition always scans References() in full. The HNSW index only serves
// Similar, which is allowed to be approximate.
type Snapshot struct {
	refs  []Reference
	index *hnsw.Graph[int64]
	byID  map[int64]*Reference
}

// NewSnapshot builds a snapshot over the given references. For large sets of
// facenet references it also builds an HNSW graph backing similarity
// lookups.
func NewSnapshot(refs []Reference) *Snapshot {
	s := &Snapshot{
		refs: refs,
		byID: make(map[int64]*Reference, len(refs)),
	}

	facenet := 0
	for i := range refs {
		s.byID[refs[i].StudentID] = &refs[i]
		if refs[i].Embedding.Variant == embedding.VariantFacenet {
			facenet++
		}
	}

	if facenet >= hnswMinReferences {
		g := hnsw.NewGraph[int64]()
		g.M = hnswMaxNeighbors
		g.Ml = 1.0 / float64(hnswMaxNeighbors)
		g.Distance = hnsw.CosineDistance
		for i := range refs {
			if refs[i].Embedding.Variant != embedding.VariantFacenet {
				continue
			}
			g.Add(hnsw.MakeNode(refs[i].StudentID, refs[i].Embedding.Vector))
		}
		s.index = g
	}

	return s
}

// References returns all references in the snapshot.
func (s *Snapshot) References() []Reference {
	return s.refs
}

// Len returns the number of references.
func (s *Snapshot) Len() int {
	return len(s.refs)
}

// Get returns the reference for a student, or nil.
func (s *Snapshot) Get(studentID int64) *Reference {
	return s.byID[studentID]
}

// Indexed reports whether similarity lookups go through the HNSW graph.
func (s *Snapshot) Indexed() bool {
	return s.index != nil
}

// Neighbor is one entry of a similarity lookup.
type Neighbor struct {
	StudentID int64
	Distance  float64
}

// Similar returns up to k other enrolled references nearest to the
// student's own facenet reference, nearest first. Above the index cutoff
// the neighborhood comes from the HNSW graph and may miss a true neighbor;
// below it the whole set is scanned. A lookup for an unknown student or a
// pixel-variant reference returns nil.
//
// This is an operator aid for spotting the same face enrolled under two
// student IDs. Recognition never uses it.
func (s *Snapshot) Similar(studentID int64, k int) []Neighbor {
	ref := s.byID[studentID]
	if ref == nil || ref.Embedding.Variant != embedding.VariantFacenet || k <= 0 {
		return nil
	}

	if s.index != nil {
		// Ask for one extra node since the student's own reference is in
		// the graph.
		nodes := s.index.Search(ref.Embedding.Vector, k+1)
		neighbors := make([]Neighbor, 0, k)
		for _, n := range nodes {
			if n.Key == studentID {
				continue
			}
			neighbors = append(neighbors, Neighbor{
				StudentID: n.Key,
				Distance:  float64(hnsw.CosineDistance(ref.Embedding.Vector, n.Value)),
			})
			if len(neighbors) == k {
				break
			}
		}
		return neighbors
	}

	var neighbors []Neighbor
	for i := range s.refs {
		other := &s.refs[i]
		if other.StudentID == studentID || !other.Embedding.Comparable(ref.Embedding) {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			StudentID: other.StudentID,
			Distance:  float64(hnsw.CosineDistance(ref.Embedding.Vector, other.Embedding.Vector)),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}
