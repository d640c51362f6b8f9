// Package loader registers HTTP features on the Fiber app.
//
// A Feature names itself, says whether it is enabled and registers its
// routes in Load. Manager.LoadAll loads every enabled feature in registration
// order, logs the disabled ones and refuses two features with the same name.
package loader
