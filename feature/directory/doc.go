// Package directory implements the identity-directory adapter over LDAP.
//
// The adapter binds with the directory service account, resolves the
// organization to exactly one organizational unit below the configured base,
// and lists the computer objects of that unit that logged on within the
// recency window. Computers are returned by the first label of their
// dNSHostName, falling back to their cn.
package directory
