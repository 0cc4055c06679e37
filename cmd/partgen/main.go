// Command partgen builds printable parts from registered construction
// scripts or Lisp construction files and reports what they produced.
package main

func main() {
	Execute()
}
