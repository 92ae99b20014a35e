package parser_test

import (
	"context"
	"fmt"
	"log"

	"github.com/ludo-technologies/treerate/internal/parser"
)

func ExampleParser_Parse() {
	p := parser.New()
	ctx := context.Background()

	source := []byte(`{"zoo": {"animals": ["dog", "cat"], "open": true}}`)

	result, err := p.Parse(ctx, source, parser.FormatAuto)
	if err != nil {
		log.Fatal(err)
	}

	zoo, _ := result.Value.Get("zoo")
	fmt.Println(result.Format, zoo.Keys())

	// Output: json [animals open]
}
