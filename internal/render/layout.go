package render

import "math"

// stackedHeight is the height of blocks stacked with spacing between them.
func stackedHeight(heights, blocks []int, spacing int) int {
	if len(blocks) == 0 {
		return 0
	}
	sum := (len(blocks) - 1) * spacing
	for _, b := range blocks {
		sum += heights[b]
	}
	return sum
}

// DivideIntoColumns splits blocks, in order, into at most numColumns
// columns of roughly equal height. It returns the block indices of each
// column. The first column takes every block that fits the ideal height,
// then extra blocks are moved into it for as long as that lowers the
// tallest column of the best split of the rest.
func DivideIntoColumns(heights []int, numColumns, spacing int) [][]int {
	blocks := make([]int, len(heights))
	for i := range blocks {
		blocks[i] = i
	}
	return divide(heights, blocks, numColumns, spacing)
}

func divide(heights, blocks []int, n, spacing int) [][]int {
	if len(blocks) == 0 {
		return nil
	}
	if n <= 1 {
		return [][]int{blocks}
	}

	total := stackedHeight(heights, blocks, spacing)
	ideal := float64(total-(n-1)*spacing) / float64(n)

	fit, colHeight := 1, heights[blocks[0]]
	for fit < len(blocks) {
		next := colHeight + spacing + heights[blocks[fit]]
		if float64(next) > ideal {
			break
		}
		colHeight = next
		fit++
	}
	if fit == len(blocks) {
		return [][]int{blocks}
	}

	best := math.MaxInt
	var bestCols [][]int
	for extra := 0; fit+extra < len(blocks); extra++ {
		cols := [][]int{blocks[:fit+extra]}
		cols = append(cols, divide(heights, blocks[fit+extra:], n-1, spacing)...)
		tallest := 0
		for _, c := range cols {
			tallest = max(tallest, stackedHeight(heights, c, spacing))
		}
		if tallest >= best {
			break
		}
		best, bestCols = tallest, cols
	}
	return bestCols
}
