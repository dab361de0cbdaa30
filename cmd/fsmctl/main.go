// Command fsmctl inspects and exercises YAML state machine definitions.
package main

func main() {
	Execute()
}
