/*
Package cssom abstracts the CSS object model as seen by a browser.

The engine itself works on source trees and resolved trees. Clients which
hand resolved stylesheets to a browser side, or read stylesheets from a
live HTML document, use the interfaces StyleSheet and Rule instead. A
concrete implementation, based on douceur, may be found in package
douceuradapter.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package cssom
