package main

func readInput() int {
	return 42
}

func constant() int {
	return 7
}

func echo(x int) int {
	return x
}

func main() {
	println(echo(readInput()) + constant())
}
