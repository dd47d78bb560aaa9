// Package batch chooses which weekly archives in the drop directory make up
// the batch to import.
//
// Archives are named Week_YYYY_WW<suffix>.zip. The batch is every archive
// sharing the greatest Week_YYYY_WW key, ordered by case-insensitive name so
// that later deliveries override earlier ones.
package batch
