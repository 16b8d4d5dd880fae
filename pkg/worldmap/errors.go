package worldmap

import "errors"

// ErrInconsistentCell means a cell holds navigable and obstacle evidence at once.
var ErrInconsistentCell = errors.New("worldmap: navigable cell holds obstacle evidence")
