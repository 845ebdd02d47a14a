// Package action holds the demo application's controllers.
package action

import (
	"fmt"
	"net/http"

	"github.com/km-arc/go-mvc/app/service"
	fwapp "github.com/km-arc/go-mvc/framework/app"
	"github.com/km-arc/go-mvc/framework/meta"
	"github.com/km-arc/go-mvc/framework/scanner"
)

// DemoAction serves everything under /demo.
type DemoAction struct {
	fwapp.Controller

	demoService service.IDemoService `autowired:""`
}

// Query greets name through the injected service.
func (a *DemoAction) Query(r *http.Request, w http.ResponseWriter, name string) string {
	return a.demoService.Get(name)
}

// Add writes "a+b=sum".
func (a *DemoAction) Add(r *http.Request, w http.ResponseWriter, x, y int) {
	_ = a.Response(w).Text(fmt.Sprintf("%d+%d=%d", x, y, x+y))
}

// Remove acknowledges id. A missing id arrives as nil.
func (a *DemoAction) Remove(id *int) (string, error) {
	if id == nil {
		return "", fmt.Errorf("id is required")
	}
	return fmt.Sprintf("removed %d", *id), nil
}

// Echo answers every path matching /demo/echo.* with the path itself.
func (a *DemoAction) Echo(r *http.Request) string {
	return r.URL.Path
}

func init() {
	scanner.Register(meta.Controller[DemoAction](
		meta.BasePath("/demo"),
		meta.RequestMapping("/query", "Query", "", "", "name"),
		meta.RequestMapping("/add", "Add", "", "", "a", "b"),
		meta.RequestMapping("/remove", "Remove", "id"),
		meta.RequestMapping("/echo.*", "Echo"),
	))
}
