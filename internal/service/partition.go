package service

import (
	"foodhub/internal/model"

	"github.com/google/uuid"
)

// Partition is the slice of a cart that becomes one order.
type Partition struct {
	RestaurantID uuid.UUID
	Lines        []model.CartLine
}

// PartitionByRestaurant groups lines by the restaurant of their menu item.
// Partitions appear in the order their restaurant first appears in lines,
// and lines keep their relative order within a partition.
func PartitionByRestaurant(lines []model.CartLine) []Partition {
	index := make(map[uuid.UUID]int)
	var parts []Partition

	for _, l := range lines {
		rid := l.Item.RestaurantID
		i, ok := index[rid]
		if !ok {
			i = len(parts)
			index[rid] = i
			parts = append(parts, Partition{RestaurantID: rid})
		}
		parts[i].Lines = append(parts[i].Lines, l)
	}

	return parts
}
