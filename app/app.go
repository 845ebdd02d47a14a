// Package app registers the demo application into the default catalog.
// Import it for its side effects.
package app

import (
	_ "github.com/km-arc/go-mvc/app/action"
	_ "github.com/km-arc/go-mvc/app/service"
)
