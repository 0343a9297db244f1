package main

func readInput() int {
	return 42
}

func constant() int {
	return 7
}

// echo returns its argument
//inputdep:independent
func echo(x int) int {
	return x
}

var limit = 3

func main() {
	println(echo(readInput())+constant(), limit)
}
