// Package schema defines the declarative parameter manifest that every
// registrable class exposes, and the rules for turning raw input (command-line
// strings, decoded files, environment variables) into typed cty values that
// satisfy a parameter's declaration.
package schema
