package main

func compute() int {
	a := 3
	b := a * 4
	c := b + 1
	return c
}

func main() {
	println(compute())
}
