// Package envfile reads the dotenv file published by the env service.
//
// Values named in the sealed key list are encrypted before they leave the
// process. With watching enabled the parsed file is cached and dropped when
// the file changes on disk; otherwise it is read on every call.
package envfile
