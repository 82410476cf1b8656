package main

import "strconv"

func parseIntArg(s string) (int, error) {
	return strconv.Atoi(s)
}
