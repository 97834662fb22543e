/*
Package embedlex is the lexer for documents that embed other languages in an
HTML-like host: script and style bodies picked by lang/type, and
interpolation expressions between configurable delimiters.

🧭 Architecture:
---------------

	 text + packed state
	         |
	         v
	+-----------------+    merged tokens    +---------------+
	|  Merging Lexer  | ------------------> |   consumers   |
	|  (Session)      |                     | semtok, relex |
	+-----------------+                     +---------------+
	         |
	    raw tokens
	         |
	+-----------------+
	|   Dispatcher    |----------------------+
	+-----------------+                      |
	   |          |                          |
	   v          v                          v
	hostlex   body sub-lexer          expression sub-lexer
	          (dialect.Resolver)      (interpolation, bindings)

🔁 Incremental relexing:
-----------------------
Everything the dispatcher needs to continue from a token boundary is packed
into one int (see Pack). Lexing text[k:] from the state captured at k
reproduces the tail of a full lex exactly, which is what lets an editor relex
from the last unchanged token instead of the document start.

🧩 Regions:
----------
  - host: markup, text, comments, interpolations
  - tag attributes: inside `<script ...>` and friends, where lang and type
    attributes decide the body dialect
  - embedded body: everything up to the matching end tag, handed to the
    dialect's sub-lexer

Interpolation is not a region of its own. It is a flag on top of whatever
region it was opened in, and it never runs past that region's end.
*/
package embedlex
