/*
Package dsl provides a Go DSL for programmatically constructing Colloquy dialogue graphs.

It allows developers to define dialogue flows using a type-safe, fluent builder pattern
instead of relying on external YAML or JSON files. This is particularly useful for
procedurally generated dialogue, unit testing, and IDE autocompletion/type-checking.

Example usage:

	b := dsl.New("tavern").GlobalInt("gold", 10)

	b.Text("greet", "Keeper", "Welcome, {name}!").Next("menu")

	b.Choice("menu").
		Option("Buy ale", "ale", domain.AddInt("gold", -2)).When("gold >= 2").
		Option("Leave", "bye")

	ale := b.Sequence("ale").Next("bye")
	ale.Wait("pour", time.Second).Next("drink")
	ale.Text("drink", "", "*gulp*")

	b.End("bye")

	g, err := b.Build() // validated *domain.Graph
*/
package dsl
