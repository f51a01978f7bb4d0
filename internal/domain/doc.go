// Package domain contains the core entities of the application (User, Task)
// along with their validation rules. Entities here are persistence-agnostic;
// storage concerns live in the store interfaces and their implementations.
package domain
