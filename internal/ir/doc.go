// Package ir defines the schema IR for declared composite types.
//
// A Schema is the compiled, validated form of CUE type declarations. It is
// what the records package builds Go types from and what the run journal
// identifies by SchemaHash.
//
// This package contains type definitions and encoding only. All other
// internal packages may import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Declaration order is significant and preserved everywhere
//   - Canonical encoding has no floats and no nulls
//   - All JSON tags use snake_case
package ir
