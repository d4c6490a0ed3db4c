package htmx

// SwapStrategy defines how HTMX should swap content into the target element.
type SwapStrategy string

const (
	SwapInnerHTML SwapStrategy = "innerHTML"
	SwapOuterHTML SwapStrategy = "outerHTML"
	SwapNone      SwapStrategy = "none"
)

// NoScroll keeps the scroll position after the swap.
func (s SwapStrategy) NoScroll() SwapStrategy {
	return s + " show:none"
}
