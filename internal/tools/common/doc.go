// Package common provides middleware shared by all tool packages.
package common
