// Package stock defines the inventory Item and the fixed table
// mapping item categories to category stores.
package stock
