package setup

import "github.com/neurlang/stylish/dataset"
import "github.com/neurlang/stylish/loader"

func loaderFor(d *dataset.Dataset, workers int) *loader.Loader {
	l := loader.New(d)
	l.Workers = workers
	l.Depth = 2 * workers
	return l
}
