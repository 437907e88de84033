/*
Package dsl describes scripted sequences of ledger operations (scenarios).

A scenario is a list of steps, each naming an operation of the registry, the caller it
runs for, its arguments and, optionally, the exact reason it must be rejected with.
Scenarios are usually read from YAML:

	name: cashew sale
	steps:
	  - op: tokenizer.mint
	    caller: "0xfarmer"
	    args: {name: cashew, amount: 30, unit: kg}
	  - op: tokenizer.burn
	    caller: "0xbuyer"
	    args: {id: 0}
	    expect_error: Not the owner

or built in Go with the fluent builder:

	b := dsl.New("cashew sale")

	b.Add("mint").
		As("0xfarmer").
		Do("tokenizer.mint", dsl.Args{"name": "cashew", "amount": 30, "unit": "kg"})

	b.Add("stranger cannot burn").
		As("0xbuyer").
		Do("tokenizer.burn", dsl.Args{"id": 0}).
		Rejected("Not the owner")

	sc, err := b.Build()
*/
package dsl
