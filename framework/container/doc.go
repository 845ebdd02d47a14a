// Package container is the IoC container: it instantiates the controllers
// and services found by the scanner, names them, and wires their autowired
// fields.
//
// # Container Lifecycle
//
//  1. Create:   c := container.New(container.WithLogger(log))
//  2. Register: c.RegisterAll(defs)     : fatal on duplicate capability
//  3. Inject:   c.InjectAll()           : missing keys leave fields nil
//  4. Freeze:   c.Freeze()              : read-only from here on
//  5. Serve requests
//
// # Naming
//
//	// Controller: lower-camel simple name
//	meta.Controller[DemoAction]()                     // "demoAction"
//
//	// Service: explicit value, else lower-camel simple name
//	meta.Service[DemoService]()                       // "demoService"
//	meta.Service[DemoService](meta.Named("demo"))     // "demo"
//
//	// Capabilities: fully-qualified interface name, one holder each
//	meta.Service[DemoService](meta.Implements[IDemoService]())
//	// also bound under "github.com.km-arc.go-mvc.app.service.IDemoService"
//
// # Injection
//
//	type DemoAction struct {
//	    demoService service.IDemoService `autowired:""`        // by type
//	    other       *Other               `autowired:"other"`   // looks up "Other"
//	    byFQN       *Other               `autowired:"app.x.Y"` // looked up as-is
//	}
//
// # Resolving
//
//	raw := c.Make("demoAction")
//	action, ok := container.Resolve[*action.DemoAction](c, "demoAction")
package container
