// Package service holds the demo application's services.
package service

import (
	"fmt"

	"github.com/km-arc/go-mvc/framework/meta"
	"github.com/km-arc/go-mvc/framework/scanner"
)

// IDemoService is the capability DemoAction is wired against.
type IDemoService interface {
	Get(name string) string
}

// DemoService is the default IDemoService.
type DemoService struct{}

func (*DemoService) Get(name string) string {
	return fmt.Sprintf("My name is %s", name)
}

func init() {
	scanner.Register(meta.Service[DemoService](meta.Implements[IDemoService]()))
}
