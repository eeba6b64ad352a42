// Package member is the Member/Team domain: entities, typed query paths,
// the search predicate composer and the Repository that runs queries
// through a store.Session.
//
// A search takes a SearchCondition whose fields are all optional.
// SearchPredicate turns the set fields into one conjunctive filter; unset
// fields are left out entirely, so an empty condition lists every member.
package member
