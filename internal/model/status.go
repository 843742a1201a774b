// status.go
package model

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Step es el estado lógico de una orden dentro del pipeline de entrega.
type Step string

const (
	StepPending   Step = "pending"
	StepConfirmed Step = "confirmed"
	StepReady     Step = "ready"
	StepShipping  Step = "shipping"
	StepDelivered Step = "delivered"
	StepCanceled  Step = "canceled"
)

// Pipeline en orden. Canceled queda afuera: nunca tiene índice numérico.
var pipeline = []Step{StepPending, StepConfirmed, StepReady, StepShipping, StepDelivered}

// Sinónimos heredados de otros sistemas
var stepAliases = map[string]Step{
	"pending":    StepPending,
	"confirmed":  StepConfirmed,
	"paid":       StepConfirmed,
	"ready":      StepReady,
	"processing": StepReady,
	"shipping":   StepShipping,
	"shipped":    StepShipping,
	"delivered":  StepDelivered,
	"completed":  StepDelivered,
	"done":       StepDelivered,
	"canceled":   StepCanceled,
	"cancelled":  StepCanceled,
}

// Steps devuelve todos los estados canónicos, pipeline primero y canceled al final.
func Steps() []Step {
	out := make([]Step, 0, len(pipeline)+1)
	out = append(out, pipeline...)
	return append(out, StepCanceled)
}

// Index devuelve la posición en el pipeline, o -1 para canceled / desconocido.
func (s Step) Index() int {
	for i, p := range pipeline {
		if p == s {
			return i
		}
	}
	return -1
}

func (s Step) Valid() bool {
	return s == StepCanceled || s.Index() >= 0
}

func (s Step) IsTerminal() bool {
	return s == StepCanceled
}

func (s Step) String() string {
	return string(s)
}

// ParseStep interpreta un estado en cualquiera de sus formatos de cable:
// clave canónica, sinónimo, o código numérico 0-4. El bool es false si no se reconoce.
func ParseStep(raw any) (Step, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case Step:
		return parseStepString(string(v))
	case string:
		return parseStepString(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return stepFromFloat(f)
		}
		return parseStepString(v.String())
	case int:
		return stepFromIndex(int64(v))
	case int8:
		return stepFromIndex(int64(v))
	case int16:
		return stepFromIndex(int64(v))
	case int32:
		return stepFromIndex(int64(v))
	case int64:
		return stepFromIndex(v)
	case uint:
		return stepFromIndex(int64(v))
	case uint8:
		return stepFromIndex(int64(v))
	case uint16:
		return stepFromIndex(int64(v))
	case uint32:
		return stepFromIndex(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return "", false
		}
		return stepFromIndex(int64(v))
	case float32:
		return stepFromFloat(float64(v))
	case float64:
		return stepFromFloat(v)
	}
	return "", false
}

// Aliases devuelve las claves de texto que ParseStep acepta para s, canónica incluida.
func (s Step) Aliases() []string {
	var out []string
	for key, st := range stepAliases {
		if st == s {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// NormalizeStep es la versión tolerante: lo que no se reconoce cae en pending.
func NormalizeStep(raw any) Step {
	if s, ok := ParseStep(raw); ok {
		return s
	}
	return StepPending
}

// CanAdvance indica si se puede pedir la transición current -> requested.
// Solo canceled bloquea; el resto de saltos está permitido.
func CanAdvance(current, requested Step) bool {
	return current != StepCanceled
}

func parseStepString(s string) (Step, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	if st, ok := stepAliases[key]; ok {
		return st, true
	}
	if n, err := strconv.ParseInt(key, 10, 64); err == nil {
		return stepFromIndex(n)
	}
	return "", false
}

func stepFromIndex(n int64) (Step, bool) {
	if n < 0 || n >= int64(len(pipeline)) {
		return "", false
	}
	return pipeline[n], true
}

func stepFromFloat(f float64) (Step, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return "", false
	}
	return stepFromIndex(int64(f))
}
