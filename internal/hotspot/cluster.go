package hotspot

import (
	"math"
	"sort"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/internal/spatial"
)

// Cluster groups hotspots by single linkage: two hotspots closer than
// radiusMeters (great-circle) end up in the same cluster, transitively.
// Membership does not depend on input order. Hotspots with no neighbor come
// back as clusters of one. A non-positive radius disables grouping.
func Cluster(hotspots []models.Hotspot, radiusMeters float64) []models.Cluster {
	n := len(hotspots)
	if n == 0 {
		return []models.Cluster{}
	}

	// Work on a canonical ordering so output does not depend on input order
	sorted := make([]models.Hotspot, n)
	copy(sorted, hotspots)
	sort.SliceStable(sorted, func(i, j int) bool { return lessHotspot(sorted[i], sorted[j]) })

	points := make([]spatial.Point, n)
	for i, h := range sorted {
		points[i] = spatial.Point{Lat: h.Lat, Lon: h.Lon}
	}

	uf := newUnionFind(n)
	if radiusMeters > 0 {
		// A great-circle distance is never shorter than the latitude difference,
		// so the sweep can stop once that difference alone exceeds the radius.
		latWindow := radiusMeters / spatial.MetersPerDegreeLat
		byLat := make([]int, n)
		for i := range byLat {
			byLat[i] = i
		}
		sort.SliceStable(byLat, func(a, b int) bool { return points[byLat[a]].Lat < points[byLat[b]].Lat })

		for a := 0; a < n; a++ {
			p := points[byLat[a]]
			for b := a + 1; b < n; b++ {
				q := points[byLat[b]]
				if q.Lat-p.Lat > latWindow {
					break
				}
				if spatial.Distance(p, q) < radiusMeters {
					uf.union(byLat[a], byLat[b])
				}
			}
		}
	}

	groups := make(map[int][]models.Hotspot)
	roots := make([]int, 0)
	for i := range sorted {
		r := uf.find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], sorted[i])
	}

	clusters := make([]models.Cluster, 0, len(roots))
	for _, r := range roots {
		clusters = append(clusters, newCluster(groups[r]))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if a.MemberCount != b.MemberCount {
			return a.MemberCount > b.MemberCount
		}
		return lessHotspot(a.Members[0], b.Members[0])
	})

	return clusters
}

func newCluster(members []models.Hotspot) models.Cluster {
	points := make([]spatial.Point, len(members))
	maxProb := math.Inf(-1)
	for i, m := range members {
		points[i] = spatial.Point{Lat: m.Lat, Lon: m.Lon}
		if m.Probability > maxProb {
			maxProb = m.Probability
		}
	}
	c := spatial.Centroid(points)
	minLat, minLon, maxLat, maxLon := spatial.BoundingBox(points)

	return models.Cluster{
		Centroid:       models.LatLng{Lat: c.Lat, Lon: c.Lon},
		Bounds:         models.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon},
		MemberCount:    len(members),
		MaxProbability: maxProb,
		Members:        members,
	}
}

// lessHotspot orders by probability descending, then position, then id
func lessHotspot(a, b models.Hotspot) bool {
	if a.Probability != b.Probability {
		return a.Probability > b.Probability
	}
	if a.Lat != b.Lat {
		return a.Lat < b.Lat
	}
	if a.Lon != b.Lon {
		return a.Lon < b.Lon
	}
	return a.ID < b.ID
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
