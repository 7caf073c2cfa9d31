package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound marks a missing entity. Controllers map it to 404.
var ErrNotFound = errors.New("not found")

// ErrOrderDelivered is the terminal-state guard: a delivered order accepts
// no further status or payment changes.
var ErrOrderDelivered = errors.New("order has already been delivered")

// ValidationErrors carries per-field input errors. Controllers map it to 400.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InsufficientStockError aborts a reconciliation pass; it names the first
// offending product so the client can surface it.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// GatewayError wraps a push-gateway or image-host failure.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return "gateway: " + e.Op + ": " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }

// wrapNotFound converts driver-level misses into the service sentinel.
func wrapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
