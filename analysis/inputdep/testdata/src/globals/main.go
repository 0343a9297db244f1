package main

var counter int

var limit int

func readInput() int {
	return 42
}

func setCounter(v int) {
	counter = v
}

func readCounter() int {
	return counter
}

func readLimit() int {
	return limit
}

func main() {
	setCounter(readInput())
	limit = 3
	println(readCounter(), readLimit())
}
