// Package page slices a filtered and sorted sequence into pages.
//
// Clamp keeps a State's index within its page count; an empty sequence
// still has one (empty) page. The All size puts
// everything on one page and disables navigation.
package page
