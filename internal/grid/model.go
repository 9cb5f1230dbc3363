package grid

import "fmt"

// ExchangeItems swaps the items at p1 and p2. The positions may be in
// different sections.
func ExchangeItems[T any](sections [][]T, p1, p2 Position) error {
	if err := checkPosition(sections, p1); err != nil {
		return err
	}
	if err := checkPosition(sections, p2); err != nil {
		return err
	}
	sections[p1.Section][p1.Item], sections[p2.Section][p2.Item] =
		sections[p2.Section][p2.Item], sections[p1.Section][p1.Item]
	return nil
}

// Sizes returns the item count of each section.
func Sizes[T any](sections [][]T) []int {
	sizes := make([]int, len(sections))
	for i, s := range sections {
		sizes[i] = len(s)
	}
	return sizes
}

func checkPosition[T any](sections [][]T, p Position) error {
	if p.Section < 0 || p.Section >= len(sections) {
		return fmt.Errorf("section %d out of range [0,%d)", p.Section, len(sections))
	}
	if p.Item < 0 || p.Item >= len(sections[p.Section]) {
		return fmt.Errorf("item %d out of range [0,%d) in section %d", p.Item, len(sections[p.Section]), p.Section)
	}
	return nil
}
