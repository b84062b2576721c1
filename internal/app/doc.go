// Package app contains the assembly pipeline of a training run. An App builds
// the configuration parser for its trainer, model and data module classes,
// resolves the configuration, constructs the objects and fits the model,
// calling optional hooks between the steps. It is decoupled from any specific
// entrypoint like the trainctl binary.
package app
