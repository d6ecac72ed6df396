// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"sort"

	"github.com/google/uuid"

	"polycms/internal/models"
)

// BuildTree links a flat category list into a forest of nested nodes.
//
// Two passes: first an id→node map, then parent linking. A node whose
// parent is absent from the input (filtered out, or a dangling reference)
// is promoted to a root rather than dropped — that flattening is the
// documented contract for views that exclude inactive categories.
//
// Every level is sorted independently by (sort_order ascending, then
// display name ascending).
func BuildTree(flat []models.Category) []*models.CategoryNode {
	nodes := make(map[uuid.UUID]*models.CategoryNode, len(flat))
	order := make([]*models.CategoryNode, 0, len(flat))
	for i := range flat {
		n := &models.CategoryNode{
			Category: flat[i],
			Children: []*models.CategoryNode{},
		}
		nodes[n.ID] = n
		order = append(order, n)
	}

	roots := []*models.CategoryNode{}
	for _, n := range order {
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	return roots
}

// sortNodes orders siblings by (sort_order, display name) and recurses so
// every level of the tree is independently ordered.
func sortNodes(nodes []*models.CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].DisplayName() < nodes[j].DisplayName()
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Flatten walks a category forest depth-first, returning the display
// order as a flat list. Useful for building select dropdowns.
func Flatten(nodes []*models.CategoryNode) []*models.CategoryNode {
	var result []*models.CategoryNode
	var walk func([]*models.CategoryNode)
	walk = func(ns []*models.CategoryNode) {
		for _, n := range ns {
			result = append(result, n)
			walk(n.Children)
		}
	}
	walk(nodes)
	return result
}
