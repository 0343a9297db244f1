package main

func readInput() int {
	return 42
}

func fill(dst *int, v int) {
	*dst = v
}

func main() {
	a := 0
	fill(&a, readInput())
	b := 0
	fill(&b, 1)
	println(a, b)
}
