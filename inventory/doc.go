/*
Package inventory ties stores and the index together: it seeds the
source store, loads it into the index, partitions indexed items into
category stores and runs the whole sequence (see Run).
*/
package inventory
