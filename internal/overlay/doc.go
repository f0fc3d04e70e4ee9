// Package overlay manages the stack of dialog-like surfaces drawn above the
// current page.
//
// Every entry stays mounted until it is removed. Closing an entry fires its
// callback once and marks it closed right away; the entry itself is removed
// RemovalDelay later so the render layer can animate it out. Navigation
// discards the whole stack at once.
package overlay
