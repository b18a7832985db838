// Package product locates the directory the Fmask executable must run in for
// a Landsat or Sentinel-2 product.
//
// Landsat products run in their own directory. Sentinel-2 products (names
// starting with "S2") run in the L1C granule directory beneath GRANULE/.
// Archived products are resolved after extraction against the staging root.
package product
