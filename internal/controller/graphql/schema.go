package graphql

import (
	graphqlgo "github.com/graph-gophers/graphql-go"
)

const schemaSDL = `
schema {
  query: Query
  mutation: Mutation
}

type Query {
  users(page: Int!, search_term: String!, sort: String, order: String, role_filter_id: String): UsersPage!
  user(id: Int!): User
  pageWindow(current: String, next: String, last: String, radius: Int): PageWindow!
}

type Mutation {
  createUser(input: UserInput!): User!
  updateUser(id: Int!, input: UserInput!): User!
}

input UserInput {
  name: String!
  sortable_name: String!
  short_name: String!
  email: String
  time_zone: String
  unique_id: String
  path: String
  sis_user_id: String
  send_confirmation: String
}

type UsersPage {
  users: [User!]!
  links: PageLinks!
}

type PageLinks {
  current: String!
  next: String
  last: String
  window(radius: Int): PageWindow!
}

type PageWindow {
  pages: [Int!]!
  lastPageUnknown: Boolean!
}

type User {
  id: Int!
  uuid: String!
  name: String!
  sortable_name: String!
  short_name: String!
  email: String
  time_zone: String
  avatar_url: String
  last_login: String
  sis_user_id: String
  unique_id: String
  path: String
  roles: [String!]!
}
`

// NewSchema parses the people schema against a root resolver.
func NewSchema(root *Resolver) (*graphqlgo.Schema, error) {
	return graphqlgo.ParseSchema(schemaSDL, root, graphqlgo.MaxDepth(8))
}
