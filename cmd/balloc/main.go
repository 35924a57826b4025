// Command balloc inspects and exercises a fixed-size block allocator.
package main

func main() {
	execute()
}
