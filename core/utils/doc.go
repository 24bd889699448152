// Package utils provides common utility functions shared across the
// application, such as loose type conversion for values scanned from
// heterogeneous dataset backends.
package utils
