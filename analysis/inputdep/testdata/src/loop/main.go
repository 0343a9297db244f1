package main

func readInput() int {
	return 42
}

func sum(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += i
	}
	return total
}

func main() {
	println(sum(10))
	println(sum(readInput()))
}
