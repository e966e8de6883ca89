package usecase

import (
	"property-explorer/internal/core/domain"
	"sort"

	"github.com/mmcloughlin/geohash"
)

// ClusterPrecision подбирает длину geohash-префикса под масштаб карты.
func ClusterPrecision(zoom int) uint {
	switch {
	case zoom <= 3:
		return 2
	case zoom <= 5:
		return 3
	case zoom <= 8:
		return 4
	case zoom <= 11:
		return 5
	case zoom <= 14:
		return 6
	case zoom <= 16:
		return 7
	default:
		return 8
	}
}

// ClusterProperties группирует объекты с координатами по ячейкам geohash.
// Объекты без координат пропускаются. Кластеры отсортированы по убыванию размера, затем по ячейке.
func ClusterProperties(items []domain.Property, zoom int) []domain.MapCluster {
	precision := ClusterPrecision(zoom)

	byCell := make(map[string]*domain.MapCluster)
	sumLat, sumLng := make(map[string]float64), make(map[string]float64)

	for _, p := range items {
		lat, lng, ok := p.Coordinates()
		if !ok {
			continue
		}
		cell := geohash.EncodeWithPrecision(lat, lng, precision)
		c, exists := byCell[cell]
		if !exists {
			box := geohash.BoundingBox(cell)
			c = &domain.MapCluster{
				Geohash: cell,
				Bounds: domain.Bounds{
					MinLat: box.MinLat,
					MaxLat: box.MaxLat,
					MinLng: box.MinLng,
					MaxLng: box.MaxLng,
				},
			}
			byCell[cell] = c
		}
		c.Count++
		c.PropertyIDs = append(c.PropertyIDs, p.ID)
		sumLat[cell] += lat
		sumLng[cell] += lng
	}

	clusters := make([]domain.MapCluster, 0, len(byCell))
	for cell, c := range byCell {
		// центр - среднее по объектам, а не центр ячейки
		c.Center = [2]float64{sumLng[cell] / float64(c.Count), sumLat[cell] / float64(c.Count)}
		clusters = append(clusters, *c)
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].Geohash < clusters[j].Geohash
	})
	return clusters
}
