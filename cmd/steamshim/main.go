// Package main builds steamshim as a c-shared library injected into a game
// process. Attach runs from package init once the Go runtime is up; detach
// is forwarded from DllMain.
//
//	go build -buildmode=c-shared -o steamshim.dll ./cmd/steamshim
package main

func main() {}
