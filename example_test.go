package hsmgen_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/pkg/domain"
)

// ExampleGenerator_ParseString extracts a nested machine from a C++ comment.
func ExampleGenerator_ParseString() {
	src := `// door.hpp
/*
@startuml door
state Closed {
  [*] -> Locked
  Locked -> Unlocked : unlock [has_key]
}
[*] -> Closed
Closed -> Open : push / swing
@enduml
*/`

	res, err := hsmgen.New().ParseString(context.Background(), src, "door.hpp")
	if err != nil {
		log.Fatal(err)
	}

	d := res.Diagrams[0]
	fmt.Println(d.Name)
	fmt.Println(d.Depth[0], d.Depth[1])
	fmt.Println(d.Inits[domain.RootState], d.Inits["Closed"])
	fmt.Println(d.AllEvents, d.AllConditions, d.AllActions)
	// Output:
	// door
	// [Closed Open] [Locked Unlocked]
	// Closed Locked
	// [push unlock] [has_key] [swing]
}
