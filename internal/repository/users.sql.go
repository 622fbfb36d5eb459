package repository

import (
	"context"

	"github.com/google/uuid"
)

const insertUser = `
INSERT INTO users (id, username, email, password)
VALUES ($1, $2, $3, $4)
RETURNING id, username, email, password, created_at, updated_at
`

type InsertUserParams struct {
	ID       uuid.UUID
	Username string
	Email    string
	Password string
}

func (q *Queries) InsertUser(c context.Context, arg InsertUserParams) (User, error) {
	row := q.db.QueryRow(c, insertUser, arg.ID, arg.Username, arg.Email, arg.Password)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Email, &i.Password, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const findUserByEmail = `
SELECT id, username, email, password, created_at, updated_at
FROM users
WHERE email = $1
`

func (q *Queries) FindUserByEmail(c context.Context, email string) (User, error) {
	row := q.db.QueryRow(c, findUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Email, &i.Password, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const findUserById = `
SELECT id, username, email, password, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) FindUserById(c context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(c, findUserById, id)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Email, &i.Password, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}
