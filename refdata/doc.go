// Package refdata holds the static, read-only reference tables the CbCR
// validator consults: ISO country metadata, OECD numeric error codes, the
// rule registry (id -> category/severity/specification reference), and the
// Pillar Two jurisdiction and payroll-cost tables.
//
// The country, error-code and Pillar Two tables are parsed once, on first
// use, from an embedded XML document; the rule registry is a Go table
// built at package initialization. None is mutated afterwards, so they
// are safe to share across concurrent validations without locking.
package refdata
