package entity

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash, never serialized
}

// UserResponse is the only wire representation of a user.
type UserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

func (u *User) Response() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
	}
}

/*
Mysql Schema:

CREATE TABLE users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(50) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL
);
*/
