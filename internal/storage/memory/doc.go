// Package memory provides the ephemeral storage tier.
//
// A Store lives exactly as long as the process that created it, which for
// the interactive console is one REPL session: the same lifetime a browser
// gives to per-tab storage.
package memory
