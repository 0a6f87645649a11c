package repository

import sq "github.com/Masterminds/squirrel"

// psql builds statements with $n placeholders for pgx.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
