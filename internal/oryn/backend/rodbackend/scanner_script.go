package rodbackend

// scanScript walks the accessibility-relevant DOM and returns a JSON array
// of raw element descriptors. Every scanned node is tagged with a stable
// data-oryn-id attribute so later actions can re-locate it without rescanning.
const scanScript = `
(includeHidden) => {
	const SEL = 'a,button,input,select,textarea,form,label,dialog,[role],[onclick],' +
		'[contenteditable],h1,h2,h3,h4,h5,h6,p,span,strong,b,em,img';
	const nodes = Array.from(document.querySelectorAll(SEL));
	let nextId = 1;
	const out = [];
	for (const el of nodes) {
		const style = window.getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		const visible = style.display !== 'none' && style.visibility !== 'hidden' &&
			style.opacity !== '0' && rect.width > 0 && rect.height > 0;
		if (!visible && !includeHidden) continue;

		if (!el.hasAttribute('data-oryn-id')) {
			el.setAttribute('data-oryn-id', String(nextId++));
		}
		const id = parseInt(el.getAttribute('data-oryn-id'), 10);

		const attrs = {};
		for (const a of Array.from(el.attributes || [])) {
			if (a.name === 'data-oryn-id') continue;
			attrs[a.name] = a.value;
		}

		let label = '';
		if (el.id) {
			const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (l) label = l.innerText || '';
		}
		if (!label && el.getAttribute('aria-label')) label = el.getAttribute('aria-label');

		const children = Array.from(el.children)
			.filter((c) => c.hasAttribute('data-oryn-id'))
			.map((c) => parseInt(c.getAttribute('data-oryn-id'), 10));

		out.push({
			id: id,
			element_type: el.tagName.toLowerCase(),
			role: el.getAttribute('role') || '',
			text: (el.innerText || el.value || '').slice(0, 500),
			label: label,
			value: el.value || '',
			placeholder: el.getAttribute('placeholder') || '',
			selector: '[data-oryn-id="' + id + '"]',
			xpath: '',
			rect: { x: rect.x, y: rect.y, w: rect.width, h: rect.height },
			attributes: attrs,
			state: {
				checked: !!el.checked,
				selected: !!el.selected,
				disabled: !!el.disabled,
				readonly: !!el.readOnly,
				expanded: el.getAttribute('aria-expanded') === 'true',
				focused: document.activeElement === el,
			},
			children: children,
		});
	}
	return out;
}
`
