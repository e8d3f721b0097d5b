// Package all registers every storage backend with the factory. Import it
// for side effects from composition roots:
//
//	import _ "costengine/internal/storage/all"
package all

import (
	_ "costengine/internal/storage/postgres"
	_ "costengine/internal/storage/sqlite"
)
