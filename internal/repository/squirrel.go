package repository

import sq "github.com/Masterminds/squirrel"

// psql builds every repository query with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
