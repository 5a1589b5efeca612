package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleNormal(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(Normal)
	c.SetOutput(&out)

	c.Header("building metamodel", "./billing", "./shipping")
	c.Phase("Scanning")
	c.Step("Described %d object types", 2)
	c.Detail("object type billing.Invoice")
	c.Summary("Summary:", Stat{"Specifications", 2}, Stat{"Members", 7})
	c.Done("metamodel is valid")

	assert.Equal(t, "metamodel: building metamodel\n"+
		"Sources: ./billing, ./shipping\n\n"+
		"Scanning:\n"+
		"✓ Described 2 object types\n"+
		"\nSummary:\n"+
		"   Specifications: 2\n"+
		"   Members: 7\n"+
		"\nmetamodel: metamodel is valid\n", out.String())
}

func TestConsoleLevels(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(Verbose)
	c.SetOutput(&out)
	c.Detail("changed %s", "invoice.go")
	c.Success("rebuilt")
	assert.Equal(t, "  changed invoice.go\nrebuilt\n", out.String())

	out.Reset()
	c = NewConsole(Quiet)
	c.SetOutput(&out)
	c.Info("hidden")
	c.Step("hidden")
	c.Done("hidden")
	assert.Empty(t, out.String())
}
