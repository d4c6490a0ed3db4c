// Package selection is the per-session selection store: the selected
// character and the open state of its detail overlay. Refresh is an explicit
// cache invalidation of the selected detail.
package selection
