package model

import "time"

// StatusSummary cuenta órdenes por paso canónico.
type StatusSummary struct {
	Counts      map[Step]int `json:"counts"`
	Total       int          `json:"total"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Summarize arma el resumen a partir de un listado de órdenes.
func Summarize(orders []*Order, now time.Time) StatusSummary {
	counts := make(map[Step]int, len(pipeline)+1)
	for _, s := range Steps() {
		counts[s] = 0
	}
	for _, o := range orders {
		counts[NormalizeStep(o.Step)]++
	}
	return StatusSummary{Counts: counts, Total: len(orders), GeneratedAt: now}
}
