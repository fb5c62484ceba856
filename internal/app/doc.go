// Package app contains the core application logic: reading and decoding a
// sheet file, evaluating it and rendering the result. It is decoupled from
// any specific entrypoint like a CLI.
package app
