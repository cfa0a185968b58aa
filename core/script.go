// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// ScriptEvaluator is the contract of the external inline script evaluator.
// Scripts may read and write any parameter in the scope's reach and any
// node variable addressed as componentName.portName.variableName or by
// alias. The engine runs every non-empty script in the hierarchy before
// simulation; a failure there is fatal for initialization.
type ScriptEvaluator interface {

	// Interpret parses the script and reports syntax errors without running it
	Interpret(script string, scope *System) (output string, err error)

	// Eval runs the script in a system scope
	Eval(script string, scope *System) (output string, err error)

	// EvalInComponent runs a script in the scope of one component
	EvalInComponent(script string, scope Component) (output string, err error)

	// EvalExpression evaluates a single expression, used when parameter
	// values do not resolve as literals or plain references
	EvalExpression(expr string, scope *System) (value float64, err error)
}
